package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Pipeline errors
	//
	// ErrUnknownSeedTrack is a legitimate terminal outcome, not a transport
	// failure: the recommendation service has never heard of the seed.
	ErrUnknownSeedTrack       = fmt.Errorf("no recommendations for seed track")
	ErrCatalogUnavailable     = fmt.Errorf("catalog service unavailable")
	ErrSimilarityUnavailable  = fmt.Errorf("similarity service unavailable")
	ErrResolutionFailed       = fmt.Errorf("track resolution failed")
	ErrPlaylistCreationFailed = fmt.Errorf("playlist creation failed")
	ErrTrackAdditionFailed    = fmt.Errorf("adding tracks to playlist failed")
	ErrRunInProgress          = fmt.Errorf("a run for this seed is already in progress")
	ErrSeedTrackNotFound      = fmt.Errorf("seed track not found in catalog")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
