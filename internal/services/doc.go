// Package services defines the [CatalogService] and [SimilarityService]
// interfaces and implements them for Spotify and Last.fm.
//
// # Catalog (Spotify)
//
// [SpotifyService] uses OAuth2 for authentication; the [oauth2] client
// automatically refreshes expired tokens using the refresh token. All
// requests go through a shared retry path that backs off on HTTP 429
// (honoring Retry-After) and 5xx responses.
//
// Search results are deduplicated by case-insensitive title before
// truncation, because the catalog returns multiple album re-releases of
// the same song.
//
// # Similarity (Last.fm)
//
// [LastFMService] wraps the track.getsimilar method. The upstream service
// omits payload fields inconsistently, so decoding is tolerant: a payload
// that doesn't match the expected schema yields zero candidates, which
// callers interpret as "we don't know that song". Only transport and
// non-2xx failures are errors.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrCatalogUnavailable] : Spotify request failed
//   - [shared.ErrSimilarityUnavailable] : Last.fm request failed
package services
