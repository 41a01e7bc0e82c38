// Package mem defines page geometry and the address type shared by the
// allocator, the address-space service and the process table.
package mem
