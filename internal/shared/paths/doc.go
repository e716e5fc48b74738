// Package paths provides the logical directory layout of the file gateway.
//
// # Directory Structure
//
//	/                  (internal storage root, admin only)
//	  ├── shared/      (shared between all users)
//	  ├── public/      (public drop folder)
//	  └── users/
//	      └── {username}/
//	          ├── Documents/
//	          ├── Downloads/
//	          ├── Pictures/
//	          ├── Music/
//	          └── Videos/
//
// Paths under the external mount prefixes (/media, /mnt, /run/media, /Volumes) are not
// part of the internal tree; they address host volumes directly.
//
// All helpers operate on logical (slash separated) paths, never on host paths.
package paths
