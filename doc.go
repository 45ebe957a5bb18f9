// Package gouge computes tapered groove ("gouge") toolpaths over surfaces.
//
// Given a curve lying on a surface and a ball-end tool diameter, NewProfile
// samples stations along the curve, offsets them into the surface along
// the surface normal, threads a rail through the resulting contact points
// and builds one profile circle per station tangent to the rail. Run drives
// the computation for every curve of a sketch and hands each profile to a
// Kernel which cuts the groove out of a solid body.
package gouge
