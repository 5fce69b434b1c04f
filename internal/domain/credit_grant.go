package domain

// CreditGrant is the set of per-capability usage allowances a plan confers.
// It is copied by value into both the payment ledger and the user record so
// the two never drift from a single source of plan data at read time.
type CreditGrant struct {
	GPT3TurboCredits     *int64 `db:"gpt_3_turbo_credits" json:"gpt_3_turbo_credits,omitempty"`
	GPT4TurboCredits     *int64 `db:"gpt_4_turbo_credits" json:"gpt_4_turbo_credits,omitempty"`
	GPT4Credits          *int64 `db:"gpt_4_credits" json:"gpt_4_credits,omitempty"`
	GPT4oCredits         *int64 `db:"gpt_4o_credits" json:"gpt_4o_credits,omitempty"`
	GPT4oMiniCredits     *int64 `db:"gpt_4o_mini_credits" json:"gpt_4o_mini_credits,omitempty"`
	Claude3OpusCredits   *int64 `db:"claude_3_opus_credits" json:"claude_3_opus_credits,omitempty"`
	Claude3SonnetCredits *int64 `db:"claude_3_sonnet_credits" json:"claude_3_sonnet_credits,omitempty"`
	Claude3HaikuCredits  *int64 `db:"claude_3_haiku_credits" json:"claude_3_haiku_credits,omitempty"`
	GeminiProCredits     *int64 `db:"gemini_pro_credits" json:"gemini_pro_credits,omitempty"`
	FineTuneCredits      *int64 `db:"fine_tune_credits" json:"fine_tune_credits,omitempty"`
	DalleImages          *int64 `db:"dalle_images" json:"dalle_images,omitempty"`
	SDImages             *int64 `db:"sd_images" json:"sd_images,omitempty"`
}

// Clone returns a deep copy of the grant, detached from the plan it came from.
func (g CreditGrant) Clone() CreditGrant {
	return CreditGrant{
		GPT3TurboCredits:     cloneInt(g.GPT3TurboCredits),
		GPT4TurboCredits:     cloneInt(g.GPT4TurboCredits),
		GPT4Credits:          cloneInt(g.GPT4Credits),
		GPT4oCredits:         cloneInt(g.GPT4oCredits),
		GPT4oMiniCredits:     cloneInt(g.GPT4oMiniCredits),
		Claude3OpusCredits:   cloneInt(g.Claude3OpusCredits),
		Claude3SonnetCredits: cloneInt(g.Claude3SonnetCredits),
		Claude3HaikuCredits:  cloneInt(g.Claude3HaikuCredits),
		GeminiProCredits:     cloneInt(g.GeminiProCredits),
		FineTuneCredits:      cloneInt(g.FineTuneCredits),
		DalleImages:          cloneInt(g.DalleImages),
		SDImages:             cloneInt(g.SDImages),
	}
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
