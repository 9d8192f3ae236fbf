// Package slotgen нарезает рабочее окно профессионала на слоты фиксированной длины.
package slotgen

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ErrNotOnGrid интервал не совпадает ни с одним слотом сетки
var ErrNotOnGrid = errors.New("slotgen: interval is not on the slot grid")

// Generate возвращает последовательность слотов дня для профиля
//
// Курсор стартует с WorkStartTime и шагает на SessionDuration, пока
// cursor+session <= WorkEndTime; неполный хвост отбрасывается. Слот недоступен,
// если среди existing есть занятый слот, конфликтующий с ним в режиме mode.
// Совпадающий по границам сохраненный слот переносит свой ID.
//
// Последовательность ленивая и перезапускаемая: каждый range заново вычисляет
// слоты из тех же входных данных.
func Generate(
	profile domain.AvailabilityProfile,
	date time.Time,
	existing []domain.Slot,
	mode domain.ConflictMode,
) (iter.Seq[domain.Slot], error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	day := types.DateOnly(date)
	recorded := sameDay(existing, day)
	session := int(profile.SessionDuration / time.Minute)
	start := profile.WorkStartTime.Minutes()
	end := profile.WorkEndTime.Minutes()

	return func(yield func(domain.Slot) bool) {
		for cursor := start; cursor+session <= end; cursor += session {
			slot := candidate(profile.ProfessionalID, day, cursor, session)
			resolve(&slot, recorded, mode)
			if !yield(slot) {
				return
			}
		}
	}, nil
}

// Available оставляет в последовательности только свободные слоты
func Available(seq iter.Seq[domain.Slot]) iter.Seq[domain.Slot] {
	return func(yield func(domain.Slot) bool) {
		for slot := range seq {
			if !slot.IsAvailable {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// Count возвращает количество слотов в сетке без учета занятости
func Count(profile domain.AvailabilityProfile) (int, error) {
	if err := profile.Validate(); err != nil {
		return 0, err
	}
	window := profile.WorkEndTime.Sub(profile.WorkStartTime)
	return int(window / profile.SessionDuration), nil
}

// Locate возвращает слот сетки с границами [start, end)
// Занятость не проверяется: это делает вызывающий код под блокировкой.
func Locate(
	profile domain.AvailabilityProfile,
	date time.Time,
	start, end types.TimeString,
) (domain.Slot, error) {
	if err := profile.Validate(); err != nil {
		return domain.Slot{}, err
	}

	session := int(profile.SessionDuration / time.Minute)
	offset := start.Minutes() - profile.WorkStartTime.Minutes()

	switch {
	case offset < 0:
		return domain.Slot{}, fmt.Errorf("%w: %s is before work start %s", ErrNotOnGrid, start, profile.WorkStartTime)
	case offset%session != 0:
		return domain.Slot{}, fmt.Errorf("%w: %s is not aligned to %d minute sessions", ErrNotOnGrid, start, session)
	case end.Minutes()-start.Minutes() != session:
		return domain.Slot{}, fmt.Errorf("%w: %s-%s does not match session length %s",
			ErrNotOnGrid, start, end, profile.SessionDuration)
	case end.IsAfter(profile.WorkEndTime):
		return domain.Slot{}, fmt.Errorf("%w: %s is after work end %s", ErrNotOnGrid, end, profile.WorkEndTime)
	}

	return candidate(profile.ProfessionalID, types.DateOnly(date), start.Minutes(), session), nil
}

func candidate(professionalID uuid.UUID, day time.Time, startMinutes, session int) domain.Slot {
	// границы уже проверены по рабочему окну, переполнения быть не может
	start, _ := types.NewTimeStringFromMinutes(startMinutes)
	end, _ := types.NewTimeStringFromMinutes(startMinutes + session)
	return domain.Slot{
		ProfessionalID: professionalID,
		Date:           day,
		StartTime:      start,
		EndTime:        end,
		IsAvailable:    true,
	}
}

func resolve(slot *domain.Slot, recorded []domain.Slot, mode domain.ConflictMode) {
	for i := range recorded {
		other := &recorded[i]
		if other.StartTime.Equal(slot.StartTime) && other.EndTime.Equal(slot.EndTime) {
			slot.ID = other.ID
			slot.CreatedAt = other.CreatedAt
			slot.UpdatedAt = other.UpdatedAt
		}
		if !other.IsAvailable && slot.ConflictsWith(other, mode) {
			slot.IsAvailable = false
		}
	}
}

func sameDay(existing []domain.Slot, day time.Time) []domain.Slot {
	out := slices.Clone(existing)
	return slices.DeleteFunc(out, func(s domain.Slot) bool {
		return !types.IsSameDay(s.Date, day)
	})
}
