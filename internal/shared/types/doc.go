// Package types provides shared data structures for the file gateway.
//
// Core Types:
//   - Identity, FolderGrant: who is asking and which folders they may reach
//   - ProtectedPath: administrator pinned folder
//   - ResolvedLocation: logical path mapped onto the host filesystem
//   - FileEntry: read projection of filesystem metadata
//   - Operation: client-visible progress record
//   - DriveInfo: externally mounted volume
package types
