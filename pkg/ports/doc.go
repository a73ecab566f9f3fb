/*
Package ports defines the driven ports (interfaces) of the funnel engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various definition sources, submission backends and journals.

# Key Interfaces

  - FunnelLoader: Responsible for loading Funnel definitions (e.g., from Loam or Memory).
  - Submitter: Forwards a Lead Record and resolves the outcome (the Submission Gateway).
  - Journal: Records resolved submission attempts for auditing.
  - DistributedLocker: Provides distributed locking to guard identical submissions across replicas.
*/
package ports
