package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusOpen      = "OPEN"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// Line statuses advance monotonically; CANCELLED is reachable from any
// pre-DELIVERED status. Quantity/instruction edits are only legal while NEW.
const (
	LineStatusNew       = "NEW"
	LineStatusFired     = "FIRED"
	LineStatusCooking   = "COOKING"
	LineStatusReady     = "READY"
	LineStatusDelivered = "DELIVERED"
	LineStatusCancelled = "CANCELLED"
)

const (
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusVoided    = "VOIDED"
)

const (
	TableStatusFree     = "FREE"
	TableStatusOccupied = "OCCUPIED"
)

// ── Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleWaiter  = "WAITER"
	UserRoleKitchen = "KITCHEN"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

// ── Configurable labels (no DB constraint) ──

const (
	StationGrill    = "GRILL"
	StationFry      = "FRY"
	StationCold     = "COLD"
	StationBeverage = "BEVERAGE"
	StationDessert  = "DESSERT"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodQR       = "QR"
	PaymentMethodTransfer = "TRANSFER"
)
