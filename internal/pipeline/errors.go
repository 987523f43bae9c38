package pipeline

import "fmt"

// CountryError wraps a failure while producing one country's rules.
type CountryError struct {
	Country string
	Token   string
	Err     error
}

func (e *CountryError) Error() string {
	return fmt.Sprintf("country %q (%s): %v", e.Country, e.Token, e.Err)
}

func (e *CountryError) Unwrap() error {
	return e.Err
}
