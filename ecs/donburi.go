// Package ecs provides ECS adapters for stardust.
package ecs

import (
	"github.com/phanxgames/stardust"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EngineEventType is the Donburi event type for stardust engine events.
// Subscribe to this in your ECS systems to react to effects starting,
// stopping, failing, or the quality tier changing.
var EngineEventType = events.NewEventType[stardust.EngineEvent]()

// EffectData mirrors one live effect handle.
type EffectData struct {
	HandleID    uint64
	ContainerID string
	Slot        string
	Kind        stardust.EffectKind
	State       stardust.HandleState
	Failures    int
}

// Effect is the component carried by every mirrored handle entity.
var Effect = donburi.NewComponentType[EffectData]()

// DonburiSink is an EventSink that publishes engine events into a Donburi
// world and keeps one entity per live handle.
type DonburiSink struct {
	world    donburi.World
	entities map[uint64]donburi.Entity
	tier     stardust.QualityTier
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Events are published to EngineEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, entities: make(map[uint64]donburi.Entity)}
}

// Publish mirrors ev into the world and queues it on EngineEventType.
func (s *DonburiSink) Publish(ev stardust.EngineEvent) {
	switch ev.Kind {
	case stardust.EventStarted:
		ent := s.world.Create(Effect)
		Effect.SetValue(s.world.Entry(ent), EffectData{
			HandleID:    ev.HandleID,
			ContainerID: ev.ContainerID,
			Slot:        ev.Slot,
			Kind:        ev.Effect,
			State:       stardust.HandleRunning,
		})
		s.entities[ev.HandleID] = ent
	case stardust.EventPaused:
		s.update(ev.HandleID, func(d *EffectData) { d.State = stardust.HandlePaused })
	case stardust.EventResumed:
		s.update(ev.HandleID, func(d *EffectData) { d.State = stardust.HandleRunning })
	case stardust.EventFailed:
		s.update(ev.HandleID, func(d *EffectData) { d.Failures++ })
	case stardust.EventStopped:
		if ent, ok := s.entities[ev.HandleID]; ok {
			delete(s.entities, ev.HandleID)
			if s.world.Valid(ent) {
				s.world.Remove(ent)
			}
		}
	case stardust.EventQualityChanged:
		s.tier = ev.Tier
	}
	EngineEventType.Publish(s.world, ev)
}

func (s *DonburiSink) update(id uint64, fn func(d *EffectData)) {
	ent, ok := s.entities[id]
	if !ok || !s.world.Valid(ent) {
		return
	}
	fn(Effect.Get(s.world.Entry(ent)))
}

// Entity returns the entity mirroring a handle.
func (s *DonburiSink) Entity(handleID uint64) (donburi.Entity, bool) {
	ent, ok := s.entities[handleID]
	return ent, ok
}

// Len returns the number of mirrored handles.
func (s *DonburiSink) Len() int {
	return len(s.entities)
}

// Tier returns the last tier announced by a quality event, or zero.
func (s *DonburiSink) Tier() stardust.QualityTier {
	return s.tier
}
