package pricing

import "cotizador/models"

// Page sections that depend on the role
const (
	SectionSolicitar      = "solicitar"
	SectionMisSolicitudes = "mis-solicitudes"
	SectionPendientes     = "pendientes"
	SectionProcesadas     = "procesadas"
)

// RoleView describes what a role sees on the quoting page
type RoleView struct {
	Role             string
	ShowCostColumns  bool
	ShowDownload     bool
	ShowMetricPanels bool
	ShowMonedaBase   bool
	PricesTitle      string
	ProcesadasEmpty  string
	Sections         map[string]bool
}

// ViewFor returns the view settings for role
func ViewFor(role string) RoleView {
	role = EffectiveRole(role)
	v := RoleView{
		Role:             role,
		ShowCostColumns:  role != RoleVendedor,
		ShowDownload:     role != RoleVendedor,
		ShowMetricPanels: role != RoleVendedor,
		ShowMonedaBase:   role != RoleVendedor,
		PricesTitle:      "Listas de Precios",
		ProcesadasEmpty:  "No has procesado solicitudes",
		Sections:         map[string]bool{},
	}
	if role == RoleVendedor {
		v.PricesTitle = "Mi Lista de Precios"
	}
	if role == RoleAdmin || role == RoleDireccion || role == RoleSubdireccion {
		v.ProcesadasEmpty = "No hay solicitudes procesadas en el sistema"
	}

	switch role {
	case RoleVendedor:
		v.Sections[SectionSolicitar] = true
		v.Sections[SectionMisSolicitudes] = true
	case RoleGerenciaComercial, RoleSubdireccion:
		v.Sections[SectionSolicitar] = true
		v.Sections[SectionMisSolicitudes] = true
		v.Sections[SectionPendientes] = true
		v.Sections[SectionProcesadas] = true
	case RoleDireccion, RoleGerencia, RoleAdmin:
		v.Sections[SectionPendientes] = true
		v.Sections[SectionProcesadas] = true
	}
	return v
}

// CanApprove reports whether role may review pending requests
func (v RoleView) CanApprove() bool {
	return v.Sections[SectionPendientes]
}

// MinimumPrice returns precio_minimo_lista, falling back to the minimum of role
func MinimumPrice(role string, row models.PriceRow) *float64 {
	if row.PrecioMinimoLista != nil {
		return row.PrecioMinimoLista
	}
	switch EffectiveRole(role) {
	case RoleVendedor:
		return row.PrecioVendedorMin
	case RoleGerenciaComercial:
		return row.PrecioGerenteComMin
	case RoleSubdireccion:
		return row.PrecioSubdireccionMin
	default:
		return row.PrecioDireccionMin
	}
}

// MaximumPrice returns precio_maximo_lista, falling back to precio_maximo
func MaximumPrice(row models.PriceRow) *float64 {
	if row.PrecioMaximoLista != nil {
		return row.PrecioMaximoLista
	}
	return row.PrecioMaximo
}
