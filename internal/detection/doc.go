// Package detection locates the spoked emblem of a flag and counts its spokes.
//
// The package implements the measurement half of the conformance pipeline:
//
//   - Emblem location: centroid of hue-classified pixels in the middle band and
//     a radius taken as the median of per-ray farthest hits
//   - Angular profiling: fraction of emblem pixels along each ray through an
//     annulus, with slow drift removed and spoke structure sharpened
//   - Periodicity: a narrow-band DFT over the plausible spoke-count range
//   - Peak detection: circular local maxima with minimum separation, a
//     wraparound check and pairwise fusion of doubled edge responses
//
// # Algorithm Overview
//
//  1. LocateEmblem classifies the middle band and casts RaySteps rays
//  2. BuildProfile samples ProfileSteps angles through the annulus
//  3. NewProfile removes the moving-average baseline and negates the
//     circular second difference
//  4. EstimatePeriodicity picks the dominant frequency k
//  5. FindPeaks and FusePairs turn the profile into spoke angles
//
// Steps 1 and 2 fan out across goroutines; every worker writes a disjoint
// slice of the output and the caller waits for all of them before the next
// stage reads it, so results do not depend on the worker count.
//
// # Coordinate System
//
// Angles are measured in the image frame: 0° points along +X and angles grow
// toward +Y (clockwise on screen). Profile index i maps to i*360/N degrees.
//
// # Limitations
//
// The detector assumes an upright, unrotated, orthographic image with a single
// emblem. Pair fusion assumes the two edge responses of a spoke are adjacent
// in angular order; very uneven spoke widths can mis-pair them.
package detection
