package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Roles known to the pricing backend
const (
	RoleVendedor          = "Vendedor"
	RoleGerenciaComercial = "Gerencia_Comercial"
	RoleSubdireccion      = "Subdireccion"
	RoleDireccion         = "Direccion"
	RoleGerencia          = "Gerencia"
	RoleAdmin             = "Admin"
)

// IVARate is the value added tax applied to the negotiated total
var IVARate = decimal.RequireFromString("0.16")

var hundred = decimal.NewFromInt(100)

// allowedDiscountByRole is the maximum discount (percent over the list maximum) each role may give
var allowedDiscountByRole = map[string]int64{
	RoleVendedor:          20,
	RoleGerenciaComercial: 25,
	RoleSubdireccion:      30,
	RoleDireccion:         35,
	RoleGerencia:          40,
	RoleAdmin:             100,
}

// EffectiveRole returns role, or Vendedor when no role is known yet
func EffectiveRole(role string) string {
	if role == "" {
		return RoleVendedor
	}
	return role
}

// AllowedDiscount returns the discount ceiling in percent for role. Unknown roles get 0.
func AllowedDiscount(role string) decimal.Decimal {
	allowed, ok := allowedDiscountByRole[EffectiveRole(role)]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(allowed)
}

// DiscountPercent computes max(0, (max-proposed)/max)*100.
// It is 0 when either price is not positive.
func DiscountPercent(maxPrice, proposed decimal.Decimal) decimal.Decimal {
	if !maxPrice.IsPositive() || !proposed.IsPositive() {
		return decimal.Zero
	}
	pct := maxPrice.Sub(proposed).Div(maxPrice).Mul(hundred)
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// CheckResult is the outcome of comparing a discount against the role ceiling
type CheckResult struct {
	Role    string
	Percent decimal.Decimal
	Allowed decimal.Decimal
	Blocked bool
}

// CheckDiscount compares the discount implied by proposed against the ceiling of role.
// Blocked only when the discount is strictly above the ceiling.
func CheckDiscount(role string, maxPrice, proposed decimal.Decimal) CheckResult {
	role = EffectiveRole(role)
	pct := DiscountPercent(maxPrice, proposed)
	allowed := AllowedDiscount(role)
	return CheckResult{
		Role:    role,
		Percent: pct,
		Allowed: allowed,
		Blocked: pct.GreaterThan(allowed),
	}
}

// Warning is the inline row message for a blocked check, empty otherwise
func (c CheckResult) Warning() string {
	if !c.Blocked {
		return ""
	}
	return fmt.Sprintf("Descuento %s%% > %s%% (Tu rol: %s)", c.Percent.StringFixed(2), c.Allowed.String(), c.Role)
}

// Toast is the error toast shown when a check blocks the quote
func (c CheckResult) Toast() string {
	return fmt.Sprintf("Descuento %s%% supera tu límite de %s%%. Debes solicitar autorización.", c.Percent.StringFixed(2), c.Allowed.String())
}

// LineTotals are the derived cells of a price row for a proposed amount
type LineTotals struct {
	TotalNegociado decimal.Decimal
	IVA            decimal.Decimal
	Descuento      decimal.Decimal
	HasDescuento   bool
}

// ComputeLine derives the negotiated total, its IVA and the discount for one row
func ComputeLine(maxPrice, proposed decimal.Decimal, cantidad int) LineTotals {
	qty := decimal.NewFromInt(int64(cantidad))
	total := proposed.Mul(qty)
	lt := LineTotals{
		TotalNegociado: total,
		IVA:            total.Mul(IVARate).Round(0),
	}
	if proposed.IsPositive() && maxPrice.IsPositive() {
		lt.Descuento = DiscountPercent(maxPrice, proposed)
		lt.HasDescuento = true
	}
	return lt
}
