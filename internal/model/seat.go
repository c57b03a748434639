package model

// Seat is a single sellable place at an event.  Seat IDs are generated
// when the event is initialized and never change afterwards.
//
// Fields:
//  ID    – opaque identifier, unique within the event.
//  Price – base price in the event's own currency.
type Seat struct {
    ID    string
    Price float64
}
