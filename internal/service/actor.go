package service

// Actor is the authenticated caller of a service operation. Handlers build it
// from the request; services never look identity up on their own.
type Actor struct {
	UserID string
	Name   string
	Email  string
}

// SystemActor is used for work not triggered by a user, such as seeding.
var SystemActor = Actor{UserID: "system", Name: "System"}

func (a Actor) auditID() string {
	if a.UserID == "" {
		return SystemActor.UserID
	}
	return a.UserID
}

func (a Actor) userRef() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

func (a Actor) payload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.UserID,
		"name":  a.Name,
		"email": a.Email,
	}
}
