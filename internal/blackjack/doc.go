// Package blackjack implements the table rules for multi-player blackjack.
//
// The main type is Room, which owns a shoe, the dealer hand and the seated
// players, and moves through a fixed cycle of phases:
//
//	lobby -> betting -> dealing -> (insurance) -> acting -> dealer -> payouts -> betting
//
// Every mutating method validates its phase and turn preconditions first and
// returns one of the package's sentinel errors without touching state when
// they do not hold.
//
// # Basic Usage
//
//	room := blackjack.NewRoom("AB12", blackjack.DefaultRules(), shoe)
//	room.Join("c1", "Alice")
//	room.TakeSeat("c1")
//	room.PlaceBet("c1", 50)
//	room.StartRound("c1")
//	room.Act("c1", blackjack.ActionStand)
//	for room.DealerShouldDraw() {
//	    room.DealerDraw()
//	}
//	room.Settle()
//
// # Concurrency
//
// Room is not safe for concurrent use. Callers serialize access per room and
// pace the dealer steps themselves; see internal/server.
package blackjack
