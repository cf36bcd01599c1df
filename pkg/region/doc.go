/*
Package region splices generated content into the managed region of a host
document.

The managed region is everything between one start marker and one end marker.
A Document records where those markers sit as span indices into the original
buffer, so the prefix (up to and including the start marker) and the suffix
(from the end marker on) are never rewritten. Replacing the region is a pure
overwrite: injecting the same fragment twice gives the same document.

Parse refuses documents where either marker is missing, repeated or out of
order, rather than guessing which occurrence was meant.
*/
package region
