package entity

// Roles válidos en la sesión.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Session contexto explícito de la petición: quién actúa, sobre qué organización y desde qué tienda.
// Lo construye el cargador de sesión (JWT) y se pasa a cada operación del núcleo.
type Session struct {
	UserID         string
	OrganizationID string
	StoreID        string // tienda activa del terminal; puede ser vacío para usuarios de back-office
	Role           string
}
