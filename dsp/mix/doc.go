// SPDX-License-Identifier: EPL-2.0

// Package mix blends dry and wet signals with an output volume, ramping
// every parameter change over a short window so live adjustments stay
// click-free.
package mix
