package scenedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pose-inbetweener/internal/host"
	"pose-inbetweener/internal/mathutil"
	"pose-inbetweener/internal/pose"
	"pose-inbetweener/internal/scene"
)

var ErrNotFound = errors.New("scenedb: scene not found")

// SceneInfo describes one stored scene.
type SceneInfo struct {
	ID        string
	Name      string
	Time      float64
	Objects   int
	UpdatedAt time.Time
}

// Store reads and writes named scenes.
type Store struct {
	db *sql.DB
}

// OpenStore migrates and opens the database at path.
func OpenStore(path string) (*Store, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenedb: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores sc under name, replacing any scene with the same name. Live
// overrides are not stored.
func (s *Store) Save(ctx context.Context, name string, sc *scene.Scene) (string, error) {
	id := uuid.NewString()
	err := WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM scenes WHERE name = ?`, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenes(id, name, time, keying_mode, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id, name, sc.CurrentTime(), sc.KeyingMode().String(), time.Now().UTC().Truncate(time.Second)); err != nil {
			return err
		}

		for i, oid := range sc.Objects() {
			o, _ := sc.Object(oid)
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO objects(scene_id, object_id, parent, locked, ord) VALUES (?, ?, ?, ?, ?)`,
				id, string(o.ID), string(o.Parent), o.Locked, i); err != nil {
				return err
			}
			for _, ch := range pose.Channels {
				if err := insertSample(ctx, tx, id, o.ID, ch, true, 0, o.Rest); err != nil {
					return err
				}
				for _, kf := range o.Keys[ch] {
					if err := insertSample(ctx, tx, id, o.ID, ch, false, kf.Time, kf.Sample); err != nil {
						return err
					}
				}
			}
		}

		for i, oid := range sc.Selection() {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO selection(scene_id, object_id, ord) VALUES (?, ?, ?)`, id, string(oid), i); err != nil {
				return err
			}
		}

		for i, g := range sc.KeyingGroups() {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO keying_groups(scene_id, name, parent, ord) VALUES (?, ?, ?, ?)`, id, g.Name, g.Parent, i); err != nil {
				return err
			}
			for j, m := range g.Members {
				if _, err := tx.ExecContext(ctx, `
				INSERT INTO keying_group_members(scene_id, group_name, object_id, ord) VALUES (?, ?, ?, ?)`,
					id, g.Name, string(m), j); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scenedb: save %s: %w", name, err)
	}
	return id, nil
}

func insertSample(ctx context.Context, tx *sql.Tx, sceneID string, obj pose.ObjectID, ch pose.Channel, rest bool, t float64, smp pose.Sample) error {
	if !smp.Has(ch) {
		return nil
	}
	v := encode(ch, smp)
	_, err := tx.ExecContext(ctx, `
	INSERT INTO samples(scene_id, object_id, channel, is_rest, time, v0, v1, v2, v3)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sceneID, string(obj), ch.String(), rest, t, v[0], v[1], v[2], v[3])
	return err
}

// Load rebuilds the scene stored under name.
func (s *Store) Load(ctx context.Context, name string) (*scene.Scene, error) {
	var (
		id     string
		t      float64
		keying string
	)
	row := s.db.QueryRowContext(ctx, `SELECT id, time, keying_mode FROM scenes WHERE name = ?`, name)
	if err := row.Scan(&id, &t, &keying); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("scenedb: load %s: %w", name, err)
	}

	sc, err := s.load(ctx, id, t, keying)
	if err != nil {
		return nil, fmt.Errorf("scenedb: load %s: %w", name, err)
	}
	return sc, nil
}

func (s *Store) load(ctx context.Context, id string, t float64, keying string) (*scene.Scene, error) {
	objects, err := s.objects(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.samples(ctx, id, objects); err != nil {
		return nil, err
	}

	sc := scene.New()
	for _, o := range objects.list {
		if err := sc.AddObject(*o); err != nil {
			return nil, err
		}
	}
	if err := sc.SetTime(t); err != nil {
		return nil, err
	}
	mode, err := host.ParseKeyingMode(keying)
	if err != nil {
		return nil, err
	}
	sc.SetKeyingMode(mode)

	sel, err := s.selection(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.SetSelection(sel...)

	groups, err := s.groups(ctx, id)
	if err != nil {
		return nil, err
	}
	sc.SetKeyingGroups(groups)
	return sc, nil
}

type objectSet struct {
	list []*scene.Object
	byID map[pose.ObjectID]*scene.Object
}

func (s *Store) objects(ctx context.Context, id string) (objectSet, error) {
	set := objectSet{byID: make(map[pose.ObjectID]*scene.Object)}
	rows, err := s.db.QueryContext(ctx, `
	SELECT object_id, parent, locked FROM objects WHERE scene_id = ? ORDER BY ord`, id)
	if err != nil {
		return set, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			oid, parent string
			locked      bool
		)
		if err := rows.Scan(&oid, &parent, &locked); err != nil {
			return set, err
		}
		o := &scene.Object{ID: pose.ObjectID(oid), Parent: pose.ObjectID(parent), Locked: locked}
		set.list = append(set.list, o)
		set.byID[o.ID] = o
	}
	return set, rows.Err()
}

func (s *Store) samples(ctx context.Context, id string, set objectSet) error {
	rows, err := s.db.QueryContext(ctx, `
	SELECT object_id, channel, is_rest, time, v0, v1, v2, v3
	FROM samples WHERE scene_id = ? ORDER BY object_id, channel, time`, id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			oid, chName string
			rest        bool
			t           float64
			v           [4]float64
		)
		if err := rows.Scan(&oid, &chName, &rest, &t, &v[0], &v[1], &v[2], &v[3]); err != nil {
			return err
		}
		o, ok := set.byID[pose.ObjectID(oid)]
		if !ok {
			continue
		}
		ch, err := pose.ParseChannel(chName)
		if err != nil {
			return err
		}
		smp := decode(ch, v)
		if rest {
			o.Rest = o.Rest.Merge(smp)
			continue
		}
		o.Keys[ch] = append(o.Keys[ch], pose.Keyframe{Time: t, Sample: smp})
	}
	return rows.Err()
}

func (s *Store) selection(ctx context.Context, id string) ([]pose.ObjectID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT object_id FROM selection WHERE scene_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pose.ObjectID
	for rows.Next() {
		var oid string
		if err := rows.Scan(&oid); err != nil {
			return nil, err
		}
		out = append(out, pose.ObjectID(oid))
	}
	return out, rows.Err()
}

func (s *Store) groups(ctx context.Context, id string) ([]host.KeyingGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT g.name, g.parent, m.object_id
	FROM keying_groups g
	LEFT JOIN keying_group_members m ON m.scene_id = g.scene_id AND m.group_name = g.name
	WHERE g.scene_id = ?
	ORDER BY g.ord, m.ord`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []host.KeyingGroup
	for rows.Next() {
		var (
			name, parent string
			member       sql.NullString
		)
		if err := rows.Scan(&name, &parent, &member); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Name != name {
			out = append(out, host.KeyingGroup{Name: name, Parent: parent})
		}
		if member.Valid {
			g := &out[len(out)-1]
			g.Members = append(g.Members, pose.ObjectID(member.String))
		}
	}
	return out, rows.Err()
}

// List returns every stored scene, by name.
func (s *Store) List(ctx context.Context) ([]SceneInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT s.id, s.name, s.time, s.updated_at, COUNT(o.object_id)
	FROM scenes s LEFT JOIN objects o ON o.scene_id = s.id
	GROUP BY s.id ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("scenedb: list: %w", err)
	}
	defer rows.Close()
	var out []SceneInfo
	for rows.Next() {
		var info SceneInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.Time, &info.UpdatedAt, &info.Objects); err != nil {
			return nil, fmt.Errorf("scenedb: list: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the scene stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("scenedb: delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// encode packs one channel into four columns. Rotations are stored as
// quaternions.
func encode(ch pose.Channel, smp pose.Sample) [4]float64 {
	switch ch {
	case pose.Translation:
		return [4]float64{smp.Translation[0], smp.Translation[1], smp.Translation[2], 0}
	case pose.Rotation:
		return [4]float64(smp.Rotation)
	default:
		return [4]float64{smp.Scale[0], smp.Scale[1], smp.Scale[2], 0}
	}
}

func decode(ch pose.Channel, v [4]float64) pose.Sample {
	switch ch {
	case pose.Translation:
		return pose.TranslationSample(mathutil.Vec3{v[0], v[1], v[2]})
	case pose.Rotation:
		return pose.RotationSample(mathutil.Quat(v))
	default:
		return pose.ScaleSample(mathutil.Vec3{v[0], v[1], v[2]})
	}
}
