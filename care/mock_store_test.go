package care_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bantra/gardeparents/care"
)

// mockStore is a care.TxStore whose calls are scripted per test.
type mockStore struct {
	mock.Mock
}

var _ care.TxStore = (*mockStore)(nil)

func (m *mockStore) Backend() care.Backend { return care.BackendLocal }

func (m *mockStore) ListChildren(ctx context.Context) ([]care.Child, error) {
	args := m.Called(ctx)
	children, _ := args.Get(0).([]care.Child)
	return children, args.Error(1)
}

func (m *mockStore) GetChild(ctx context.Context, id care.ChildID) (*care.Child, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*care.Child)
	return c, args.Error(1)
}

func (m *mockStore) AddChild(ctx context.Context, c care.Child) (care.ChildID, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(care.ChildID), args.Error(1)
}

func (m *mockStore) UpdateChild(ctx context.Context, c care.Child) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockStore) DeleteChild(ctx context.Context, id care.ChildID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) ListCaregivers(ctx context.Context) ([]care.Caregiver, error) {
	args := m.Called(ctx)
	caregivers, _ := args.Get(0).([]care.Caregiver)
	return caregivers, args.Error(1)
}

func (m *mockStore) GetCaregiver(ctx context.Context, id care.CaregiverID) (*care.Caregiver, error) {
	args := m.Called(ctx, id)
	cg, _ := args.Get(0).(*care.Caregiver)
	return cg, args.Error(1)
}

func (m *mockStore) AddCaregiver(ctx context.Context, cg care.Caregiver) (care.CaregiverID, error) {
	args := m.Called(ctx, cg)
	return args.Get(0).(care.CaregiverID), args.Error(1)
}

func (m *mockStore) UpdateCaregiver(ctx context.Context, cg care.Caregiver) error {
	return m.Called(ctx, cg).Error(0)
}

func (m *mockStore) DeleteCaregiver(ctx context.Context, id care.CaregiverID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) ListCareDays(ctx context.Context) ([]care.CareDay, error) {
	args := m.Called(ctx)
	days, _ := args.Get(0).([]care.CareDay)
	return days, args.Error(1)
}

func (m *mockStore) GetCareDay(ctx context.Context, id care.CareDayID) (*care.CareDay, error) {
	args := m.Called(ctx, id)
	cd, _ := args.Get(0).(*care.CareDay)
	return cd, args.Error(1)
}

func (m *mockStore) AddCareDay(ctx context.Context, cd care.CareDay) (care.CareDayID, error) {
	args := m.Called(ctx, cd)
	return args.Get(0).(care.CareDayID), args.Error(1)
}

func (m *mockStore) UpdateCareDay(ctx context.Context, cd care.CareDay) error {
	return m.Called(ctx, cd).Error(0)
}

func (m *mockStore) DeleteCareDay(ctx context.Context, id care.CareDayID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// WithTx runs fn against the mock itself unless an error is scripted.
func (m *mockStore) WithTx(ctx context.Context, fn func(care.Store) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(m)
}
