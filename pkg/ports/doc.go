/*
Package ports defines the boundary interfaces of the actiflow engine.

The compiler and state calculator never touch storage directly; callers wire
concrete adapters (see pkg/adapters) into these ports. This keeps the core
pure and lets hosts swap persistence and locking strategies freely.
*/
package ports
