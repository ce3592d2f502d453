package timeline

import (
	"fmt"
	"math"
)

// Elevator phase identifiers.
const (
	AtRest      PhaseID = "at_rest"
	SpeedingUp  PhaseID = "speeding_up"
	Cruising    PhaseID = "cruising"
	SlowingDown PhaseID = "slowing_down"
	Stopped     PhaseID = "stopped"
)

// Direction of an elevator ride.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

func (d Direction) sign() float64 {
	if d == Down {
		return -1
	}
	return 1
}

// ElevatorParams shapes the five-phase ride.
type ElevatorParams struct {
	Accel      float64
	Direction  Direction
	RestTime   float64
	AccelTime  float64
	CruiseTime float64
	DecelTime  float64
	StopTime   float64
}

// DefaultElevator is a two-second ramp at 2 m/s² each way.
func DefaultElevator() ElevatorParams {
	return ElevatorParams{
		Accel:      2,
		Direction:  Up,
		RestTime:   1,
		AccelTime:  2,
		CruiseTime: 3,
		DecelTime:  2,
		StopTime:   1,
	}
}

// Elevator builds the ride: at rest, speeding up, cruising, slowing down,
// stopped. Accel is the speeding-up magnitude; Direction sets the sign.
// Braking is scaled by AccelTime/DecelTime so the car is at rest when the
// slowing-down phase ends.
func Elevator(p ElevatorParams) (Timeline, error) {
	a := math.Abs(p.Accel) * p.Direction.sign()
	brake := a
	if p.DecelTime > 0 {
		brake = a * p.AccelTime / p.DecelTime
	}
	dir := p.Direction.String()

	tl, err := NewBuilder().
		Then(AtRest, "At rest", p.RestTime, 0, "Doors closed, scale reads true weight").
		Then(SpeedingUp, "Speeding up", p.AccelTime, a, fmt.Sprintf("Accelerating %s", dir)).
		Then(Cruising, "Cruising", p.CruiseTime, 0, fmt.Sprintf("Constant velocity %s", dir)).
		Then(SlowingDown, "Slowing down", p.DecelTime, -brake, "Braking toward the floor").
		Then(Stopped, "Stopped", p.StopTime, 0, "Arrived").
		Build()
	if err != nil {
		return Timeline{}, fmt.Errorf("elevator timeline: %w", err)
	}
	return tl, nil
}
