package deck

import (
	"errors"
	"math/rand/v2"
)

// DeckSize is the number of cards in a single deck.
const DeckSize = 52

// ErrShoeExhausted is returned when neither the shoe nor the discard pile
// holds a card.
var ErrShoeExhausted = errors.New("shoe exhausted")

// Shoe is the draw pile for one table together with its discard pile.
// Cards leave the shoe through Draw and come back through Discard, so the
// number of cards owned by a shoe plus those held in hands never changes.
type Shoe struct {
	cards   []Card
	discard []Card
	rng     *rand.Rand
	cutCard int
	size    int
}

// NewShoe builds deckCount standard decks and shuffles them.
func NewShoe(deckCount int, rng *rand.Rand) *Shoe {
	if deckCount < 1 {
		deckCount = 1
	}
	cards := make([]Card, 0, DeckSize*deckCount)
	for range deckCount {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				cards = append(cards, NewCard(suit, rank))
			}
		}
	}

	s := &Shoe{
		cards:   cards,
		rng:     rng,
		cutCard: DeckSize,
		size:    len(cards),
	}
	s.shuffle()
	return s
}

// NewStackedShoe returns a shoe that deals cards in exactly the given order.
// It only reshuffles its discard pile once the stack is empty.
func NewStackedShoe(cards []Card, rng *rand.Rand) *Shoe {
	stack := make([]Card, len(cards))
	copy(stack, cards)
	return &Shoe{
		cards: stack,
		rng:   rng,
		size:  len(stack),
	}
}

// Draw removes and returns the next card. A shoe that has fallen below its
// cut card first takes back the discard pile and reshuffles.
func (s *Shoe) Draw() (Card, error) {
	s.ReshuffleIfNeeded()
	if len(s.cards) == 0 {
		return Card{}, ErrShoeExhausted
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card, nil
}

// Discard returns cards from a finished hand to the discard pile.
func (s *Shoe) Discard(cards ...Card) {
	s.discard = append(s.discard, cards...)
}

// ReshuffleIfNeeded merges the discard pile back into the shoe when fewer
// than a deck's worth of cards remain. It reports whether it reshuffled.
func (s *Shoe) ReshuffleIfNeeded() bool {
	if len(s.cards) >= s.cutCard && len(s.cards) > 0 {
		return false
	}
	if len(s.discard) == 0 {
		return false
	}
	merged := make([]Card, 0, len(s.cards)+len(s.discard))
	merged = append(merged, s.cards...)
	merged = append(merged, s.discard...)
	s.cards = merged
	s.discard = nil
	s.shuffle()
	return true
}

// Remaining returns the number of cards left to draw before a reshuffle.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Discarded returns the size of the discard pile.
func (s *Shoe) Discarded() int {
	return len(s.discard)
}

// Available returns every card the shoe could still deal, counting the
// discard pile.
func (s *Shoe) Available() int {
	return len(s.cards) + len(s.discard)
}

// Size returns the number of cards the shoe was built with.
func (s *Shoe) Size() int {
	return s.size
}

func (s *Shoe) shuffle() {
	if s.rng == nil {
		rand.Shuffle(len(s.cards), s.swap)
		return
	}
	s.rng.Shuffle(len(s.cards), s.swap)
}

func (s *Shoe) swap(i, j int) {
	s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
}
