package sqlite

// Schema contains the SQL statements to create the database schema for SQLite.
// All statements use IF NOT EXISTS so the schema can be applied idempotently
// on every open.
const Schema = `
-- Members: identity surface. Owned by the identity subsystem; mirrored here
-- for locality and ownership checks.
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    city TEXT,
    country TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Relationship edges: one row per unordered member pair (member_a < member_b).
-- Never hard-deleted; blocking/declining is a status change only.
-- connection_degree and closeness_score are cached, last-writer-wins values.
CREATE TABLE IF NOT EXISTS relationship_edges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_a INTEGER NOT NULL REFERENCES members(id),
    member_b INTEGER NOT NULL REFERENCES members(id),
    status TEXT NOT NULL DEFAULT 'pending',
    connection_degree INTEGER,
    closeness_score INTEGER NOT NULL DEFAULT 0,
    interaction_count INTEGER NOT NULL DEFAULT 0,
    last_interaction_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (member_a < member_b),
    UNIQUE (member_a, member_b)
);

CREATE INDEX IF NOT EXISTS idx_edges_member_a ON relationship_edges(member_a, status);
CREATE INDEX IF NOT EXISTS idx_edges_member_b ON relationship_edges(member_b, status);

-- Interaction events: append-only engagement log per edge.
CREATE TABLE IF NOT EXISTS interaction_events (
    id TEXT PRIMARY KEY,
    edge_id INTEGER NOT NULL REFERENCES relationship_edges(id),
    activity_type TEXT NOT NULL,
    payload TEXT,
    points INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_edge ON interaction_events(edge_id);

-- Event RSVPs: attendance responses used for shared-event overlap.
CREATE TABLE IF NOT EXISTS event_rsvps (
    member_id INTEGER NOT NULL REFERENCES members(id),
    event_id TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (member_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_rsvps_event ON event_rsvps(event_id, status);

-- Recommendations: policy-gated content items.
CREATE TABLE IF NOT EXISTS recommendations (
    id TEXT PRIMARY KEY,
    owner_id INTEGER NOT NULL REFERENCES members(id),
    title TEXT NOT NULL,
    body TEXT,
    city TEXT,
    country TEXT,
    type TEXT,
    price_level INTEGER NOT NULL DEFAULT 0,
    rating REAL NOT NULL DEFAULT 0,
    tags TEXT,
    rule TEXT NOT NULL DEFAULT 'anyone',
    min_closeness INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recs_owner ON recommendations(owner_id);
CREATE INDEX IF NOT EXISTS idx_recs_city ON recommendations(city);

-- Bookable resources and their bookings.
CREATE TABLE IF NOT EXISTS resources (
    id TEXT PRIMARY KEY,
    host_id INTEGER NOT NULL REFERENCES members(id),
    title TEXT NOT NULL,
    city TEXT,
    country TEXT,
    rule TEXT NOT NULL DEFAULT 'anyone',
    min_closeness INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    resource_id TEXT NOT NULL REFERENCES resources(id),
    member_id INTEGER NOT NULL REFERENCES members(id),
    status TEXT NOT NULL DEFAULT 'pending',
    start_at TIMESTAMP NOT NULL,
    end_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bookings_resource ON bookings(resource_id);
`
