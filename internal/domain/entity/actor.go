package entity

// ActorContext identifica a quien ejecuta la operación. Se pasa explícitamente a cada caso de uso.
// Un SuperAdmin no tiene tenant fijo y puede operar sobre cualquiera.
type ActorContext struct {
	TenantID   string
	UserID     string
	SuperAdmin bool
}
