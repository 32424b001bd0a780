// Package artifacts stores the outputs of a build.
//
// A build's descriptor set, its JSON rendering and the edited source units
// are bundled into a set of files and handed to a Manager. The filesystem
// manager writes them under a directory per target; the S3 manager uploads a
// tar.gz archive per target.
package artifacts
