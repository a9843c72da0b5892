/*
Package workers sizes worker pools for containerized environments.

In a container with a CPU limit, runtime.NumCPU still reports the host's
core count, while Go 1.19+ sets GOMAXPROCS from the cgroup limit. The
helpers here derive pool sizes from GOMAXPROCS so batch work (like logo
prefetching) scales with the CPUs the process actually has:

	// Downloading logos is I/O-bound: 2 workers per available CPU.
	n := workers.ForIO(16)

	// Decoding and resizing them is CPU-bound: 1 per CPU.
	n := workers.ForCPU(8)

Operators can override the calculation with the LOGO_WORKERS environment
variable. All functions are safe for concurrent use.
*/
package workers
