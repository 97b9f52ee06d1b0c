// Package scoring holds the deterministic pricing and judging rules of a
// challenge: the progressive per-attempt fee, the weighted rubric with its
// attempt penalty, and the per-criterion averaging of several judges.
//
// Every function here is pure and safe for concurrent use. Arithmetic is done
// with decimal values so that repeated calls are bit-identical and prices are
// exact to the cent.
package scoring
