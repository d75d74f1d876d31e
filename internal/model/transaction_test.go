package model

import "testing"

func TestActionType_IsTrade(t *testing.T) {
	trades := []ActionType{ActionBuy, ActionSell, ActionBuyToOpen, ActionSellToOpen, ActionBuyToClose, ActionSellToClose}
	for _, action := range trades {
		if !action.IsTrade() {
			t.Errorf("expected %s to be a trade", action)
		}
	}

	for _, action := range []ActionType{ActionDividend, ActionInterest, ActionType("UNKNOWN")} {
		if action.IsTrade() {
			t.Errorf("expected %s not to be a trade", action)
		}
	}
}
