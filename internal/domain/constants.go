package domain

import (
	"fmt"
	"strings"
)

// ConflictMode правило, по которому сгенерированный слот считается занятым
type ConflictMode string

const (
	// ConflictExactStart занят, если есть бронь с тем же временем начала
	ConflictExactStart ConflictMode = "exact_start"
	// ConflictOverlap занят, если есть бронь с пересекающимся интервалом
	ConflictOverlap ConflictMode = "overlap"
)

// ParseConflictMode разбирает режим; пустая строка означает exact_start
func ParseConflictMode(s string) (ConflictMode, error) {
	switch mode := ConflictMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ConflictExactStart, nil
	case ConflictExactStart, ConflictOverlap:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown conflict mode %q", s)
	}
}

// Strategy стратегия появления слотов в хранилище
type Strategy string

const (
	// StrategyOnDemand слоты вычисляются при запросе и сохраняются только при бронировании
	StrategyOnDemand Strategy = "on_demand"
	// StrategyMaterialized свободные слоты сохраняются заранее (при запросе и фоновой задачей)
	StrategyMaterialized Strategy = "materialized"
)

// ParseStrategy разбирает стратегию; пустая строка означает on_demand
func ParseStrategy(s string) (Strategy, error) {
	switch strategy := Strategy(strings.ToLower(strings.TrimSpace(s))); strategy {
	case "":
		return StrategyOnDemand, nil
	case StrategyOnDemand, StrategyMaterialized:
		return strategy, nil
	default:
		return "", fmt.Errorf("unknown slot strategy %q", s)
	}
}

// Форматы даты и времени в API
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
