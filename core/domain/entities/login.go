package entities

// LoginStep is one expect/send exchange of an interactive CLI login.
type LoginStep struct {
	Expect string
	Send   string // empty to only wait
}
