package model

import "github.com/google/uuid"

// Role is a user's role within one project. The same user may hold a
// different role in every project they belong to.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// Action identifies an operation class checked against a role's capabilities.
type Action string

const (
	ActionRead           Action = "read"
	ActionItemWrite      Action = "item:write"
	ActionItemDelete     Action = "item:delete"
	ActionMovementCreate Action = "movement:create"
	ActionOrderWrite     Action = "order:write"
	ActionOrderLifecycle Action = "order:lifecycle"
	ActionSupplierWrite  Action = "supplier:write"
	ActionSupplierDelete Action = "supplier:delete"
	ActionMemberManage   Action = "member:manage"
)

// Capabilities is the explicit, typed permission set attached to a role.
// Replaces the free-form permission maps the back-office UI used to thread
// around: the matrix lives here and nowhere else.
type Capabilities struct {
	Read           bool
	ItemWrite      bool
	ItemDelete     bool
	MovementCreate bool
	OrderWrite     bool
	OrderLifecycle bool
	SupplierWrite  bool
	SupplierDelete bool
	MemberManage   bool
}

var roleCapabilities = map[Role]Capabilities{
	RoleOwner: {
		Read: true, ItemWrite: true, ItemDelete: true, MovementCreate: true,
		OrderWrite: true, OrderLifecycle: true,
		SupplierWrite: true, SupplierDelete: true, MemberManage: true,
	},
	RoleAdmin: {
		Read: true, ItemWrite: true, ItemDelete: true, MovementCreate: true,
		OrderWrite: true, OrderLifecycle: true,
		SupplierWrite: true, SupplierDelete: true, MemberManage: true,
	},
	RoleUser: {
		Read: true, ItemWrite: true, MovementCreate: true,
		OrderWrite: true, SupplierWrite: true,
	},
	RoleViewer: {
		Read: true,
	},
}

// Can reports whether the role permits the given action. Unknown roles and
// unknown actions deny.
func (r Role) Can(action Action) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	switch action {
	case ActionRead:
		return caps.Read
	case ActionItemWrite:
		return caps.ItemWrite
	case ActionItemDelete:
		return caps.ItemDelete
	case ActionMovementCreate:
		return caps.MovementCreate
	case ActionOrderWrite:
		return caps.OrderWrite
	case ActionOrderLifecycle:
		return caps.OrderLifecycle
	case ActionSupplierWrite:
		return caps.SupplierWrite
	case ActionSupplierDelete:
		return caps.SupplierDelete
	case ActionMemberManage:
		return caps.MemberManage
	}
	return false
}

// ProjectMember links a user to a project with a role. A user acts on a
// project only while an active membership row exists.
type ProjectMember struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_project_user" json:"project_id" validate:"uuid_required"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_members_project_user;index" json:"user_id" validate:"uuid_required"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=owner admin user viewer"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
