package auth

import "hotelbook/internal/apperr"

type Operation string

const (
	OpCreateBooking     Operation = "booking.create"
	OpPayBooking        Operation = "booking.pay"
	OpViewOwnBookings   Operation = "booking.view_own"
	OpListHotelBookings Operation = "booking.list_hotel"
	OpRefundBooking     Operation = "booking.refund"
	OpExpireBookings    Operation = "booking.expire"

	OpManageHotels Operation = "hotel.manage"
	OpApproveHotel Operation = "hotel.approve"

	OpViewWallet Operation = "wallet.view"

	OpListSettlements  Operation = "settlement.list"
	OpDecideSettlement Operation = "settlement.decide"
	OpManageCommission Operation = "settlement.commission"
	OpViewRevenue      Operation = "settlement.revenue"

	OpDeposit      Operation = "gateway.deposit"
	OpQueryGateway Operation = "gateway.query"

	OpCreateWithdrawal  Operation = "withdrawal.create"
	OpListWithdrawals   Operation = "withdrawal.list"
	OpDecideWithdrawal  Operation = "withdrawal.decide"
	OpViewOwnWithdrawal Operation = "withdrawal.view_own"
)

func roles(rs ...Role) map[Role]struct{} {
	m := make(map[Role]struct{}, len(rs))
	for _, r := range rs {
		m[r] = struct{}{}
	}
	return m
}

var everyone = roles(RoleGuest, RoleOwner, RoleAdmin)

// Policy maps every operation to the roles allowed to invoke it.
var Policy = map[Operation]map[Role]struct{}{
	OpCreateBooking:     roles(RoleGuest, RoleOwner),
	OpPayBooking:        roles(RoleGuest, RoleOwner),
	OpViewOwnBookings:   everyone,
	OpListHotelBookings: roles(RoleOwner, RoleAdmin),
	OpRefundBooking:     roles(RoleAdmin),
	OpExpireBookings:    roles(RoleAdmin),

	OpManageHotels: roles(RoleOwner, RoleAdmin),
	OpApproveHotel: roles(RoleAdmin),

	OpViewWallet: everyone,

	OpListSettlements:  roles(RoleAdmin),
	OpDecideSettlement: roles(RoleAdmin),
	OpManageCommission: roles(RoleAdmin),
	OpViewRevenue:      roles(RoleAdmin),

	OpDeposit:      everyone,
	OpQueryGateway: roles(RoleAdmin),

	OpCreateWithdrawal:  everyone,
	OpListWithdrawals:   roles(RoleAdmin),
	OpDecideWithdrawal:  roles(RoleAdmin),
	OpViewOwnWithdrawal: everyone,
}

// Authorize evaluates the policy table once for (op, p.Role). Unknown
// operations are denied.
func Authorize(p Principal, op Operation) error {
	if p.IsZero() {
		return apperr.Unauthenticated()
	}
	allowed, ok := Policy[op]
	if !ok {
		return apperr.Forbidden("operation not permitted")
	}
	if _, ok := allowed[p.Role]; !ok {
		return apperr.Forbidden("operation not permitted for role " + string(p.Role))
	}
	return nil
}
