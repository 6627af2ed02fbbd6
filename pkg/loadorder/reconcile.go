package loadorder

import (
	"github.com/modstack/modstack/pkg/launcher"
	"github.com/modstack/modstack/pkg/module"
)

// Reconcile merges the module cache with the user's persisted load order to
// produce the final ordered sequence of enabled module ids.
//
// When a user load order exists, its enabled entries are taken in position
// order and each external id is mapped back to a cache id; entries with no
// matching cached module are dropped silently, since they no longer
// correspond to a discovered module. When no user order exists yet, the
// launcher preferences' enabled singleplayer entries serve as the fallback,
// in their declared order.
//
// Reconcile never consults or alters dependency order: the load order is a
// user-controlled overlay, and dependency validity is informational, not a
// launch precondition.
func Reconcile(cache *module.Cache, order LoadOrder, prefs *launcher.Preferences) []string {
	if len(order) > 0 {
		var ids []string
		for _, externalID := range order.EnabledSequence() {
			if rec, ok := cache.LookupExternal(externalID); ok {
				ids = append(ids, rec.ID)
			}
		}
		return ids
	}
	return prefs.EnabledSingleplayer()
}
