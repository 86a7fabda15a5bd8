/*
Package ports defines the driven ports (interfaces) for espalier.

These interfaces decouple the compiler and router from external
implementations, so workflow sources and export caches can come from the
filesystem, memory or Redis without the core noticing.

# Key Interfaces

  - SourceLoader: retrieves workflow source text by name.
  - Watchable: optional change notifications from a loader's backend.
  - ExportCache: stores serialized graph exports for external tooling.
  - DistributedLocker: coordinates reloads across server replicas.
*/
package ports
