package main

import (
	"log/slog"
	"os"

	"github.com/akmonengine/jelly"
	"github.com/akmonengine/jelly/actor"
	"github.com/akmonengine/jelly/component"
	"github.com/akmonengine/jelly/geo"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a static ground and two pressurized balls dropping
// onto it.
func SetupScene() (*jelly.World, error) {
	cfg := jelly.DefaultWorldConfig()
	cfg.PenetrationIterations = 2

	world, err := jelly.NewWorld(geo.NewAABB(mgl64.Vec2{-20, -20}, mgl64.Vec2{20, 20}), cfg)
	if err != nil {
		return nil, err
	}

	ground, err := actor.NewBody(
		actor.SquareShape(20),
		[]float64{0}, // static
		mgl64.Vec2{0, -11},
		0,
		mgl64.Vec2{1, 1},
		false,
	)
	if err != nil {
		return nil, err
	}
	if err := world.AddBody(ground); err != nil {
		return nil, err
	}

	for i, x := range []float64{-1.5, 1.5} {
		ball, err := actor.NewBody(
			actor.CircleShape(1, 16),
			[]float64{1},
			mgl64.Vec2{x, 4 + float64(i)*2},
			0,
			mgl64.Vec2{1, 1},
			false,
			component.NewSpring(300, 10),
			component.NewPressure(40),
			component.NewShapeMatching(60, 5),
		)
		if err != nil {
			return nil, err
		}
		ball.Tag = i
		if err := world.AddBody(ball); err != nil {
			return nil, err
		}
	}

	return world, nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	world, err := SetupScene()
	if err != nil {
		slog.Error("scene setup failed", "err", err)
		os.Exit(1)
	}

	world.Events.Subscribe(jelly.COLLISION_ENTER, func(event jelly.Event) {
		enter := event.(jelly.CollisionEnterEvent)
		slog.Info("contact", "bodyA", enter.BodyA.Tag, "bodyB", enter.BodyB.Tag)
	})

	const dt = 1.0 / 60.0
	for frame := 0; frame < 600; frame++ {
		if err := world.Update(dt); err != nil {
			slog.Error("step failed", "err", err)
			os.Exit(1)
		}

		if frame%60 == 0 {
			for _, body := range world.Bodies {
				if body.IsStatic {
					continue
				}
				slog.Info("body",
					"tag", body.Tag,
					"pos", body.DerivedPos,
					"angle", body.DerivedAngle,
					"vel", body.DerivedVel)
			}
		}
	}

	slog.Info("done", "skipped_penetrations", world.PenetrationCount)
}
