package model

// UserProfile is the durable part of a user as written to the profile
// store.  The user key (an email address in practice) is not repeated
// here; stores index profiles by it.
//
// Fields:
//  Name        – given name.
//  Surname     – family name.
//  Initialized – set by the first successful initialize call.
type UserProfile struct {
    Name        string
    Surname     string
    Initialized bool
}

// UserDetails is the read model of a user.  Reservations lists the
// reservation keys recorded since the user entity was last activated;
// the list is not persisted.
type UserDetails struct {
    Key          string
    Name         string
    Surname      string
    Reservations []string
}
