/*
sp2body builds a body-labeled volume from a Raveler export.

A Raveler export holds a stack of superpixel images, one PNG per Z plane, where
each pixel's superpixel id is packed into the RGB channels.  Superpixel ids are
only unique within a plane, so the superpixel to segment map is keyed by
(plane, superpixel).  Segment ids are global and the segment to body map folds
them into bodies.

	sp2body sp_to_seg.txt seg_to_body.txt superpixel_maps/sp_map.*.png

writes sp_map-bodies.n5 in the current directory: an N5 container with a single
uint64 dataset of size width x height x planes.  The labelvol format (.dvol) keeps
each plane as a separately compressed slab and is selected with -format labelvol
or an output path ending in .dvol.

Output may also be a bucket URL:

	sp2body -output gs://bucket/fib25/bodies.n5 sp_to_seg.txt seg_to_body.txt sp_map.*.png

Use -verify to check the maps against the planes without writing anything.  A
TOML file given with -config can set logging, plane name pattern, output
compression and chunk size; command-line flags take precedence.
*/
package main
