package model

import (
	"fmt"
	"strings"
	"time"
)

type Category string

const (
	CategoryFood      Category = "FOOD"
	CategoryTransport Category = "TRANSPORT"
	CategoryHousing   Category = "HOUSING"
	CategoryShopping  Category = "SHOPPING"
	CategoryHealth    Category = "HEALTH"
	CategoryEducation Category = "EDUCATION"
	CategoryLeisure   Category = "LEISURE"
	CategorySaving    Category = "SAVING"
	CategorySalary    Category = "SALARY"
	CategoryEtc       Category = "ETC"
)

var categories = map[Category]struct{}{
	CategoryFood:      {},
	CategoryTransport: {},
	CategoryHousing:   {},
	CategoryShopping:  {},
	CategoryHealth:    {},
	CategoryEducation: {},
	CategoryLeisure:   {},
	CategorySaving:    {},
	CategorySalary:    {},
	CategoryEtc:       {},
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	switch t {
	case TypeIncome, TypeExpense:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", raw)
}

type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	Category    Category        `gorm:"size:32;not null;index" json:"category"`
	Type        TransactionType `gorm:"size:16;not null;index" json:"type"`
	QuestID     *uint           `gorm:"index" json:"questId,omitempty"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
}
