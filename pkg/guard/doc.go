/*
Package guard prevents duplicate submissions of the same Lead Record.

A visitor who clicks "submit" twice, or two tabs racing each other, must not produce two rows
in the backend. The Guard decorates a ports.Submitter and refuses a submission while an
identical record (same fingerprint) is in flight, locally and, with a DistributedLocker,
across replicas.
*/
package guard
