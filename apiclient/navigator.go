package apiclient

import "github.com/rs/zerolog/log"

// Navigator moves the user interface to route; the pipeline uses it to send the user to the
// login entry point after the backend rejects their credential.
type Navigator interface {
	Navigate(route string)
}

type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

type logNavigator struct{}

func (logNavigator) Navigate(route string) {
	log.Info().Str("route", route).Msg("Navigation requested")
}
