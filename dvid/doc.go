/*
	Package dvid provides types, constants, and functions that have no other dependencies
	and can be used by all packages within sp2body.  This includes logging, serialization
	and compression of byte payloads, small fixed-size points, and element data types.
	Since these elements are used at multiple layers (label relabeling, mapping loaders,
	volume storage engines), we separate them here.
*/
package dvid
