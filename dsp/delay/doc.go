// Package delay provides the fixed-capacity circular frame store used by
// delay effects.
//
// A [Ring] is sized once for the longest delay it will ever serve. Shorter
// delays only move the active window; the backing array is never resized or
// copied, so delay time can change while audio is running.
package delay
