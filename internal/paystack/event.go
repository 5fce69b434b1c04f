package paystack

import (
	"encoding/json"
	"fmt"
)

// GatewayName имя шлюза, записываемое в журнал платежей
const GatewayName = "Paystack"

// HeaderSignature заголовок с подписью вебхука Paystack
const HeaderSignature = "x-paystack-signature"

// EventKind закрытый набор типов событий, которые обрабатывает сервис
type EventKind int

const (
	EventUnknown EventKind = iota
	EventChargeSuccess
	EventSubscriptionDisable
)

// String возвращает строковое имя типа события
func (k EventKind) String() string {
	switch k {
	case EventChargeSuccess:
		return "charge.success"
	case EventSubscriptionDisable:
		return "subscription.disable"
	default:
		return "unknown"
	}
}

// KindFromString преобразует значение поля event в EventKind.
// Нераспознанные значения дают EventUnknown, это не ошибка.
func KindFromString(s string) EventKind {
	switch s {
	case "charge.success":
		return EventChargeSuccess
	case "subscription.disable":
		return EventSubscriptionDisable
	default:
		return EventUnknown
	}
}

// EventData данные события из поля data
type EventData struct {
	SubscriptionCode string  `json:"subscription_code"`
	Reference        string  `json:"reference,omitempty"`
	Amount           float64 `json:"amount,omitempty"`
	Currency         string  `json:"currency,omitempty"`
	Status           string  `json:"status,omitempty"`
}

// Event представляет распознанное вебхук-событие Paystack
type Event struct {
	Kind EventKind
	Type string // исходное значение поля event
	Data EventData
	Raw  []byte // тело запроса как получено от шлюза
}

// envelope формат конверта события на проводе
type envelope struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// ParseEvent разбирает тело вебхука в типизированное событие
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, fmt.Errorf("paystack: failed to parse event body: %w", err)
	}

	return Event{
		Kind: KindFromString(env.Event),
		Type: env.Event,
		Data: env.Data,
		Raw:  body,
	}, nil
}
