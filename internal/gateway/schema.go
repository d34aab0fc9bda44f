package gateway

import "github.com/accessdesk/mediation-gateway/internal/core/domain"

// Operation names exposed to the tool-calling layer.
const (
	OpCreateUser   = "create_user"
	OpGetUsers     = "get_users"
	OpUpdateUser   = "update_user"
	OpDeleteUser   = "delete_user"
	OpCreateRole   = "create_role"
	OpGetRoles     = "get_roles"
	OpUpdateRole   = "update_role"
	OpDeleteRole   = "delete_role"
	OpSeedDatabase = "seed_database"
)

// ParamType is the primitive type a tool argument is declared with.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeDate    ParamType = "date"
)

// Param declares one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	Enum        []string // allowed item values for array params
}

// Tool declares one operation and its argument schema.
type Tool struct {
	Name        string
	Description string
	Params      []Param
}

// InputSchema renders the tool arguments as a JSON Schema object.
func (t Tool) InputSchema() map[string]any {
	props := make(map[string]any, len(t.Params))
	required := make([]string, 0)
	for _, p := range t.Params {
		prop := map[string]any{"description": p.Description}
		switch p.Type {
		case TypeDate:
			prop["type"] = "string"
			prop["format"] = "date"
		case TypeArray:
			items := map[string]any{"type": "string"}
			if len(p.Enum) > 0 {
				items["enum"] = p.Enum
			}
			prop["type"] = "array"
			prop["items"] = items
		default:
			prop["type"] = string(p.Type)
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func permissionNames() []string {
	out := make([]string, len(domain.AllPermissions))
	for i, p := range domain.AllPermissions {
		out[i] = string(p)
	}
	return out
}

func accountParams(create bool) []Param {
	dob := "Date of birth (YYYY-MM-DD)"
	if !create {
		dob += "; an empty string clears it"
	}
	return []Param{
		{Name: "firstName", Type: TypeString, Required: create, Description: "First name"},
		{Name: "lastName", Type: TypeString, Required: create, Description: "Last name"},
		{Name: "email", Type: TypeString, Required: create, Description: "Email address, stored lowercased"},
		{Name: "password", Type: TypeString, Required: create, Description: "Password, at least 6 characters"},
		{Name: "phone", Type: TypeString, Description: "Phone number"},
		{Name: "dateOfBirth", Type: TypeDate, Description: dob},
		{Name: "role", Type: TypeString, Required: create, Description: "Role name (e.g. admin, user) or role ID"},
		{Name: "isActive", Type: TypeBoolean, Description: "Whether the user is active (default true)"},
	}
}

func roleParams(create bool) []Param {
	return []Param{
		{Name: "name", Type: TypeString, Required: create, Description: "Unique role name"},
		{Name: "description", Type: TypeString, Required: create, Description: "Role description"},
		{Name: "permissions", Type: TypeArray, Description: "Granted permissions", Enum: permissionNames()},
		{Name: "isActive", Type: TypeBoolean, Description: "Whether the role is active (default true)"},
	}
}

func idParam(kind string, required bool) Param {
	return Param{Name: "id", Type: TypeString, Required: required, Description: kind + " ID"}
}

// catalog lists every tool in presentation order.
func catalog() []Tool {
	return []Tool{
		{
			Name:        OpCreateUser,
			Description: "Create a new user. The role may be given by name or by ID.",
			Params:      accountParams(true),
		},
		{
			Name:        OpGetUsers,
			Description: "Get all users, or one user when an ID is given.",
			Params:      []Param{idParam("User", false)},
		},
		{
			Name:        OpUpdateUser,
			Description: "Update an existing user. Only the given fields change.",
			Params:      append([]Param{idParam("User", true)}, accountParams(false)...),
		},
		{
			Name:        OpDeleteUser,
			Description: "Delete a user by ID.",
			Params:      []Param{idParam("User", true)},
		},
		{
			Name:        OpCreateRole,
			Description: "Create a new role.",
			Params:      roleParams(true),
		},
		{
			Name:        OpGetRoles,
			Description: "Get all roles, or one role when an ID is given.",
			Params:      []Param{idParam("Role", false)},
		},
		{
			Name:        OpUpdateRole,
			Description: "Update an existing role. Only the given fields change.",
			Params:      append([]Param{idParam("Role", true)}, roleParams(false)...),
		},
		{
			Name:        OpDeleteRole,
			Description: "Delete a role by ID.",
			Params:      []Param{idParam("Role", true)},
		},
		{
			Name:        OpSeedDatabase,
			Description: "Create or reset the default admin and user roles and the admin user.",
		},
	}
}
