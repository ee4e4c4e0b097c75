package azaudio

/*------------------------------------------------------------------
 *
 * Purpose:	Version values, kept in their own file since we plan
 *		to update these regularly.
 *
 *		VersionNote explains what kind of patch the current
 *		build is on:
 *			- "rel", a proper release
 *			- "rc", a release candidate
 *			- "dev", an incomplete development build
 *
 *---------------------------------------------------------------*/

import "fmt"

const (
	VersionMajor = 0
	VersionMinor = 4
	VersionPatch = 0
	VersionNote  = "dev"
)

var VersionString = fmt.Sprintf("%d.%d.%d-%s", VersionMajor, VersionMinor, VersionPatch, VersionNote)
