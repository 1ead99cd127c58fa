package engine

import "testing"

func TestCanEnter_ConsumptionMatrix(t *testing.T) {
	tests := []struct {
		mover  Role
		target CellTag
		want   bool
	}{
		{Prey, Empty, true},
		{Prey, FoodCell, true},
		{Prey, PreyCell, false},
		{Prey, PredatorCell, false},
		{Prey, ApexCell, false},
		{Predator, Empty, true},
		{Predator, FoodCell, false},
		{Predator, PreyCell, true},
		{Predator, PredatorCell, false},
		{Predator, ApexCell, false},
		{Apex, Empty, true},
		{Apex, FoodCell, false},
		{Apex, PreyCell, true},
		{Apex, PredatorCell, true},
		{Apex, ApexCell, false},
	}

	for _, test := range tests {
		t.Run(string(test.mover)+"->"+string(test.target), func(t *testing.T) {
			if got := CanEnter(test.mover, test.target); got != test.want {
				t.Errorf("expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestAbilityGeometryOK(t *testing.T) {
	origin := Pos(5, 5)
	farApex := Pos(0, 0)
	nearApex := Pos(5, 6)

	tests := []struct {
		name string
		era  Era
		role Role
		to   Position
		apex Position
		want bool
	}{
		{"past apex straight 2", Past, Apex, Pos(5, 7), farApex, true},
		{"past apex diagonal 2", Past, Apex, Pos(7, 7), farApex, true},
		{"past apex knight", Past, Apex, Pos(7, 6), farApex, false},
		{"past apex 3", Past, Apex, Pos(5, 8), farApex, false},
		{"past predator straight", Past, Predator, Pos(3, 5), farApex, true},
		{"past predator diagonal", Past, Predator, Pos(3, 3), farApex, false},
		{"past prey knight", Past, Prey, Pos(7, 6), farApex, true},
		{"past prey 3", Past, Prey, Pos(8, 5), farApex, false},
		{"present apex 3", Present, Apex, Pos(8, 7), farApex, true},
		{"present apex 4", Present, Apex, Pos(9, 5), farApex, false},
		{"present prey 2", Present, Prey, Pos(3, 4), farApex, true},
		{"present prey 3", Present, Prey, Pos(2, 5), farApex, false},
		{"present predator not adjacent", Present, Predator, Pos(5, 3), farApex, false},
		{"present predator adjacent straight", Present, Predator, Pos(5, 3), nearApex, true},
		{"present predator adjacent diagonal", Present, Predator, Pos(3, 3), nearApex, false},
		{"future apex 2", Future, Apex, Pos(3, 4), farApex, true},
		{"future predator diagonal", Future, Predator, Pos(7, 3), farApex, true},
		{"future predator knight", Future, Predator, Pos(7, 4), farApex, false},
		{"future prey 2", Future, Prey, Pos(7, 7), farApex, false},
		{"future prey 3", Future, Prey, Pos(2, 4), farApex, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := AbilityGeometryOK(test.era, test.role, origin, test.to, test.apex); got != test.want {
				t.Errorf("expected %v, got %v", test.want, got)
			}
		})
	}
}

func TestAbilityCooldown(t *testing.T) {
	tests := []struct {
		era  Era
		role Role
		want int
	}{
		{Past, Apex, 2}, {Past, Predator, 2}, {Past, Prey, 2},
		{Present, Apex, 3}, {Present, Predator, 0}, {Present, Prey, 3},
		{Future, Apex, 3}, {Future, Predator, 2}, {Future, Prey, 2},
	}

	for _, test := range tests {
		if got := AbilityCooldown(test.era, test.role); got != test.want {
			t.Errorf("AbilityCooldown(%s, %s): expected %d, got %d", test.era, test.role, test.want, got)
		}
	}
}
