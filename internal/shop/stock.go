package shop

// StockMovementFor converts a target stock level into the movement the
// backend records. ok is false when the stock already equals target.
func StockMovementFor(p Product, target int) (StockMovement, bool, error) {
	if target < 0 {
		return StockMovement{}, false, ErrInvalidQuantity
	}
	diff := target - p.StockQuantity
	switch {
	case diff > 0:
		return StockMovement{Type: MovementEntry, Quantity: diff}, true, nil
	case diff < 0:
		return StockMovement{Type: MovementExit, Quantity: -diff}, true, nil
	default:
		return StockMovement{}, false, nil
	}
}
