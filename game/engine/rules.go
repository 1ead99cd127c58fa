package engine

// CanEnter is the consumption matrix: whether mover may step onto a cell holding target
func CanEnter(mover Role, target CellTag) bool {
	switch target {
	case Empty:
		return true
	case FoodCell:
		return mover == Prey
	case PreyCell:
		return mover == Predator || mover == Apex
	case PredatorCell:
		return mover == Apex
	}
	return false
}

// AbilityGeometryOK applies the era/role geometry table to a distance >= 2 move.
// apex is the Apex's current cell; the Present-era Predator must be next to it.
func AbilityGeometryOK(era Era, role Role, from, to, apex Position) bool {
	dr, dc := from.Deltas(to)
	d := from.Chebyshev(to)
	straight := dr == 0 || dc == 0
	diagonal := dr == dc

	switch era {
	case Past:
		switch role {
		case Apex:
			return d == 2 && (straight || (dr == 2 && dc == 2))
		case Predator:
			return d == 2 && straight
		case Prey:
			return d == 2
		}
	case Present:
		switch role {
		case Apex:
			return d >= 2 && d <= 3
		case Prey:
			return d == 2
		case Predator:
			return d == 2 && straight && from.Adjacent(apex)
		}
	case Future:
		switch role {
		case Apex:
			return d >= 2 && d <= 3
		case Predator:
			return d == 2 && (straight || diagonal)
		case Prey:
			return d == 3
		}
	}
	return false
}

// AbilityCooldown is the number of rounds an ability is locked after use
func AbilityCooldown(era Era, role Role) int {
	switch era {
	case Past:
		return 2
	case Present:
		switch role {
		case Apex, Prey:
			return 3
		case Predator:
			return 0
		}
	case Future:
		switch role {
		case Apex:
			return 3
		case Predator, Prey:
			return 2
		}
	}
	return 0
}

// Capture scoring
const (
	PreyEatsFoodPoints     = 3
	PredatorEatsPreyPoints = 3
	ApexEatsPoints         = 1
	EatenPenalty           = -1
)
