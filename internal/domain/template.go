package domain

import (
	"time"
)

// TemplatePackage пакет, в котором доступен шаблон
type TemplatePackage string

const (
	TemplatePackageFree         TemplatePackage = "free"
	TemplatePackageProfessional TemplatePackage = "professional"
	TemplatePackagePremium      TemplatePackage = "premium"
)

// Template представляет запись каталога шаблонов промптов редактора
type Template struct {
	ID           int64           `db:"id" json:"id"`
	TemplateCode string          `db:"template_code" json:"template_code"`
	Name         string          `db:"name" json:"name"`
	Type         string          `db:"type" json:"type"`
	Icon         string          `db:"icon" json:"icon"`
	Package      TemplatePackage `db:"package" json:"package"`
	New          bool            `db:"new" json:"new"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
