// Package organizer rearranges image files on disk once they have been
// analysed.
//
// OrganizeDuplicates moves every member of a duplicate group except one into
// a duplicates directory, renaming it after the member that stays.
// OrganizeImages sorts images into an aspect ratio and height tree under a
// target directory, copying by default. Both plan every operation before
// touching the filesystem and never overwrite an existing file.
package organizer
