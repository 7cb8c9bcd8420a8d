// Package ecs provides ECS adapters for stardust's engine events.
//
// The primary adapter is [NewDonburiSink], which bridges engine events
// (effect started, stopped, paused, resumed, failed, quality changed) into a
// [Donburi] world as typed events, and mirrors every live effect handle as
// an entity carrying an [Effect] component.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
