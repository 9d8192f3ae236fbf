// Package memory хранилище слотов и записей в памяти процесса.
//
// Используется при database.driver = "memory" и в тестах use case. Те же
// ограничения уникальности, что и в postgres, проверяются под мьютексом;
// транзакции выполняются строго по одной и откатываются восстановлением снимка.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type slotKey struct {
	professionalID uuid.UUID
	date           string
	start          int
}

func keyOf(s *domain.Slot) slotKey {
	return slotKey{
		professionalID: s.ProfessionalID,
		date:           s.Date.Format(types.DateFormat),
		start:          s.StartTime.Minutes(),
	}
}

// Store общее состояние для репозиториев и менеджера транзакций
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	slots        map[uuid.UUID]domain.Slot
	slotsByStart map[slotKey]uuid.UUID
	appointments map[uuid.UUID]domain.Appointment
	// activeBySlot слот -> активная (PENDING/APPROVED) запись
	activeBySlot map[uuid.UUID]uuid.UUID
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		slots:        make(map[uuid.UUID]domain.Slot),
		slotsByStart: make(map[slotKey]uuid.UUID),
		appointments: make(map[uuid.UUID]domain.Appointment),
		activeBySlot: make(map[uuid.UUID]uuid.UUID),
	}
}

// Slots репозиторий слотов поверх хранилища
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// Appointments репозиторий записей поверх хранилища
func (s *Store) Appointments() *AppointmentRepository {
	return &AppointmentRepository{store: s}
}

// TxManager менеджер транзакций поверх хранилища
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock захватывает мьютекс, если вызов идет не из транзакции (она уже держит его)
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	slots        map[uuid.UUID]domain.Slot
	slotsByStart map[slotKey]uuid.UUID
	appointments map[uuid.UUID]domain.Appointment
	activeBySlot map[uuid.UUID]uuid.UUID
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		slots:        maps.Clone(s.slots),
		slotsByStart: maps.Clone(s.slotsByStart),
		appointments: maps.Clone(s.appointments),
		activeBySlot: maps.Clone(s.activeBySlot),
	}
}

func (s *Store) restore(snap snapshot) {
	s.slots = snap.slots
	s.slotsByStart = snap.slotsByStart
	s.appointments = snap.appointments
	s.activeBySlot = snap.activeBySlot
}

// TxManager выполняет функции в эксклюзивной транзакции над Store
type TxManager struct {
	store *Store
}

// Do выполняет fn атомарно; при ошибке или панике изменения откатываются
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.store.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// DoSerializable транзакции в памяти и так выполняются строго последовательно
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
