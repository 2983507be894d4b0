// Package thread groups exported chat records into conversation threads
// and anonymizes them. Groups keep the order in which each conversation id
// first appears, and records keep their input order within a group unless
// time sorting is requested.
package thread
