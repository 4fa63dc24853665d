package types

const ContextUserKey = "user"

const ContextRequestIDKey = "request_id"

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type OrderType string

const (
	OrderTypeDineIn      OrderType = "dine_in"
	OrderTypeTakeaway    OrderType = "takeaway"
	OrderTypeRoomService OrderType = "room_service"
	OrderTypeBar         OrderType = "bar"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeRoomService, OrderTypeBar:
		return true
	}
	return false
}

// RequiresTable reports whether orders of this type must reference a table.
func (t OrderType) RequiresTable() bool {
	return t == OrderTypeDineIn
}

type NotificationType string

const (
	NotificationNewOrder      NotificationType = "new-order"
	NotificationItemsAdded    NotificationType = "items-added"
	NotificationOrderUpdate   NotificationType = "order-update"
	NotificationOrderAccepted NotificationType = "order-accepted"
	NotificationOrderRejected NotificationType = "order-rejected"
	NotificationOrderTransfer NotificationType = "order-transfer"
	NotificationSystem        NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationNewOrder, NotificationItemsAdded, NotificationOrderUpdate,
		NotificationOrderAccepted, NotificationOrderRejected, NotificationOrderTransfer,
		NotificationSystem:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)

// Identity is the authenticated caller, resolved from an externally issued
// token and the users table.
type Identity struct {
	ID    uint
	Name  string
	Email string
	Role  Role
}

func (i Identity) Response() UserResponse {
	return UserResponse{ID: i.ID, Name: i.Name, Email: i.Email, Role: i.Role}
}
