package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/bookings", "201", 0.1)
	RecordHTTPRequest("POST", "/bookings", "201", 0.2)
	RecordHTTPRequest("POST", "/bookings", "409", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/bookings", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordBookingTransition(t *testing.T) {
	BookingTransitionsTotal.Reset()

	RecordBookingTransition("PENDING")
	RecordBookingTransition("PAID")
	RecordBookingTransition("PAID")

	assert.Equal(t, float64(1), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("PENDING")))
	assert.Equal(t, float64(2), testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("PAID")))
}

func TestRecordBookingConflict(t *testing.T) {
	before := testutil.ToFloat64(BookingConflictsTotal)
	RecordBookingConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(BookingConflictsTotal))
}

func TestRecordSettlementAndWithdrawal(t *testing.T) {
	SettlementsTotal.Reset()
	WithdrawalsTotal.Reset()

	RecordSettlement("APPROVED")
	RecordWithdrawal("resolved")
	RecordWithdrawal("refuse")

	assert.Equal(t, float64(1), testutil.ToFloat64(SettlementsTotal.WithLabelValues("APPROVED")))
	assert.Equal(t, 2, testutil.CollectAndCount(WithdrawalsTotal))
}

func TestRecordGatewayCallback(t *testing.T) {
	GatewayCallbacksTotal.Reset()

	RecordGatewayCallback("success")
	RecordGatewayCallback("invalid_signature")

	expected := `
# HELP hotelbook_gateway_callbacks_total Total number of gateway callbacks by outcome
# TYPE hotelbook_gateway_callbacks_total counter
hotelbook_gateway_callbacks_total{outcome="invalid_signature"} 1
hotelbook_gateway_callbacks_total{outcome="success"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(GatewayCallbacksTotal, strings.NewReader(expected)))
}

func TestRecordEmail(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("booking_confirmation", "success")
	RecordEmail("booking_confirmation", "failed")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmation", "failed")))
}

func TestEmailQueueLength(t *testing.T) {
	EmailQueueLength.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(EmailQueueLength))
	EmailQueueLength.Set(0)
}
