package models

// Authorization request states, owned and transitioned by the backend
const (
	EstadoPendiente = "Pendiente"
	EstadoAprobada  = "Aprobada"
	EstadoRechazada = "Rechazada"
)

// SolicitudAutorizacionCreate is the body of POST /autorizaciones/solicitar
type SolicitudAutorizacionCreate struct {
	SKU             string  `json:"sku"`
	Transporte      string  `json:"transporte"`
	PrecioPropuesto float64 `json:"precio_propuesto"`
	Cliente         *string `json:"cliente"`
	Cantidad        *int    `json:"cantidad"`
	Justificacion   string  `json:"justificacion"`
}

// SolicitudAutorizacion represents an authorization request as returned by the backend
type SolicitudAutorizacion struct {
	ID                     int64    `json:"id"`
	SKU                    string   `json:"sku"`
	Transporte             string   `json:"transporte"`
	SolicitanteID          int64    `json:"solicitante_id"`
	Solicitante            string   `json:"solicitante"`
	NivelSolicitante       string   `json:"nivel_solicitante"`
	PrecioPropuesto        float64  `json:"precio_propuesto"`
	PrecioMinimoActual     float64  `json:"precio_minimo_actual"`
	DescuentoAdicionalPct  float64  `json:"descuento_adicional_pct"`
	Cliente                string   `json:"cliente"`
	Cantidad               *int     `json:"cantidad"`
	Justificacion          string   `json:"justificacion"`
	Estado                 string   `json:"estado"`
	AutorizadorID          *int64   `json:"autorizador_id"`
	Autorizador            string   `json:"autorizador"`
	FechaSolicitud         APITime  `json:"fecha_solicitud"`
	FechaRespuesta         *APITime `json:"fecha_respuesta"`
	ComentariosAutorizador string   `json:"comentarios_autorizador"`
}

// SolicitudRespuesta is the body of PUT /autorizaciones/{id}/aprobar|rechazar
type SolicitudRespuesta struct {
	Comentarios *string `json:"comentarios"`
}

// AuthorizationForm represents the request-authorization form, pre-filled from the quote
type AuthorizationForm struct {
	SKU           string `json:"sku"`
	Precio        string `json:"precio"`
	Cantidad      int    `json:"cantidad"`
	Cliente       string `json:"cliente"`
	Transporte    string `json:"transporte,omitempty"`
	Justificacion string `json:"justificacion"`
}
