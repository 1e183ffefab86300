// Package loader mounts features on the HTTP router.
//
// A Feature names itself, says whether it is enabled and registers its routes:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager keeps features in registration order. LoadAll skips disabled ones,
// stops at the first Load error (wrapped with the feature name) and returns the
// names it mounted so the caller can log them. The schema report API is the
// feature entity-sync registers today.
package loader
