package sales

import (
	"testing"

	"github.com/germani/backend/internal/domain/shared"
	"github.com/germani/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deferredPayment(amount float64, seq int64) Payment {
	return Payment{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      uuid.New(),
		Seq:         seq,
		Amount:      valueobject.NewMoneyFromFloat(amount),
		Method:      MethodDeferred,
		Disposition: DispositionDeferred,
	}
}

func TestPlanSettlement(t *testing.T) {
	t.Run("clears whole payments oldest first", func(t *testing.T) {
		payments := []Payment{
			deferredPayment(10.00, 1),
			deferredPayment(20.00, 2),
			deferredPayment(5.00, 3),
		}

		plan, err := PlanSettlement(payments, valueobject.Zero(), valueobject.NewMoneyFromFloat(30.00))

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{payments[0].ID, payments[1].ID}, plan.SettledWhole)
		assert.Nil(t, plan.Split)
		assert.Equal(t, "30.00", plan.PaymentsCleared.String())
		assert.True(t, plan.OpeningReduction.IsZero())
		assert.Equal(t, "30.00", plan.ClearedTotal().String())
	})

	t.Run("splits the payment that straddles the amount", func(t *testing.T) {
		payments := []Payment{
			deferredPayment(10.00, 1),
			deferredPayment(20.00, 2),
		}

		plan, err := PlanSettlement(payments, valueobject.Zero(), valueobject.NewMoneyFromFloat(18.50))

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{payments[0].ID}, plan.SettledWhole)
		require.NotNil(t, plan.Split)
		assert.Equal(t, payments[1].ID, plan.Split.PaymentID)
		assert.Equal(t, "8.50", plan.Split.Settled.String())
		assert.Equal(t, "11.50", plan.Split.Remaining.String())
		assert.Equal(t, "18.50", plan.ClearedTotal().String())
	})

	t.Run("overflow reduces opening balance after payments", func(t *testing.T) {
		payments := []Payment{deferredPayment(10.00, 1)}

		plan, err := PlanSettlement(payments, valueobject.NewMoneyFromFloat(50.00), valueobject.NewMoneyFromFloat(25.00))

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{payments[0].ID}, plan.SettledWhole)
		assert.Nil(t, plan.Split)
		assert.Equal(t, "10.00", plan.PaymentsCleared.String())
		assert.Equal(t, "15.00", plan.OpeningReduction.String())
		assert.Equal(t, "25.00", plan.ClearedTotal().String())
	})

	t.Run("opening balance only", func(t *testing.T) {
		plan, err := PlanSettlement(nil, valueobject.NewMoneyFromFloat(40.00), valueobject.NewMoneyFromFloat(40.00))

		require.NoError(t, err)
		assert.Empty(t, plan.SettledWhole)
		assert.Equal(t, "40.00", plan.OpeningReduction.String())
	})

	t.Run("exact single payment does not split", func(t *testing.T) {
		payments := []Payment{deferredPayment(12.34, 1)}

		plan, err := PlanSettlement(payments, valueobject.Zero(), valueobject.NewMoneyFromFloat(12.34))

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{payments[0].ID}, plan.SettledWhole)
		assert.Nil(t, plan.Split)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := PlanSettlement(nil, valueobject.NewMoneyFromFloat(10.00), valueobject.Zero())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("rejects amount above total debt", func(t *testing.T) {
		payments := []Payment{deferredPayment(10.00, 1)}

		_, err := PlanSettlement(payments, valueobject.NewMoneyFromFloat(5.00), valueobject.NewMoneyFromFloat(15.01))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_DEBT", domainErr.Code)
	})

	t.Run("does not mutate input payments", func(t *testing.T) {
		payments := []Payment{deferredPayment(10.00, 1), deferredPayment(20.00, 2)}

		_, err := PlanSettlement(payments, valueobject.Zero(), valueobject.NewMoneyFromFloat(15.00))

		require.NoError(t, err)
		assert.Equal(t, "10.00", payments[0].Amount.String())
		assert.Equal(t, "20.00", payments[1].Amount.String())
		assert.Equal(t, DispositionDeferred, payments[0].Disposition)
	})

	t.Run("conservation: cleared equals debt delta", func(t *testing.T) {
		payments := []Payment{
			deferredPayment(7.77, 1),
			deferredPayment(13.13, 2),
			deferredPayment(0.10, 3),
		}
		opening := valueobject.NewMoneyFromFloat(9.00)
		requested := valueobject.NewMoneyFromFloat(21.00)

		plan, err := PlanSettlement(payments, opening, requested)
		require.NoError(t, err)

		// Rebuild debt after applying the plan and compare
		debtBefore := opening
		for i := range payments {
			debtBefore = debtBefore.Add(payments[i].Amount)
		}

		remainingDeferred := valueobject.Zero()
		for i := range payments {
			settledWhole := false
			for _, id := range plan.SettledWhole {
				if id == payments[i].ID {
					settledWhole = true
					break
				}
			}
			if settledWhole {
				continue
			}
			if plan.Split != nil && plan.Split.PaymentID == payments[i].ID {
				remainingDeferred = remainingDeferred.Add(plan.Split.Remaining)
				continue
			}
			remainingDeferred = remainingDeferred.Add(payments[i].Amount)
		}
		debtAfter := opening.Sub(plan.OpeningReduction).Add(remainingDeferred)

		assert.True(t, debtBefore.Sub(debtAfter).Equals(plan.ClearedTotal()),
			"debt delta %s must equal cleared %s", debtBefore.Sub(debtAfter), plan.ClearedTotal())
		assert.True(t, plan.ClearedTotal().Equals(requested))
	})
}
