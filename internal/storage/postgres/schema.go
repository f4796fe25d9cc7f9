// Package postgres provides PostgreSQL implementations of storage interfaces.
package postgres

// Schema contains the SQL statements to create the database schema for
// PostgreSQL. All statements are idempotent (IF NOT EXISTS) so the schema
// can be applied on every startup.
const Schema = `
-- Members: the identity surface the graph hangs off
CREATE TABLE IF NOT EXISTS members (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    city TEXT,
    country TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Relationship edges: one row per unordered member pair (member_a < member_b).
-- Edges are never deleted; status transitions only.
CREATE TABLE IF NOT EXISTS relationship_edges (
    id BIGSERIAL PRIMARY KEY,
    member_a BIGINT NOT NULL,
    member_b BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    connection_degree INTEGER,
    closeness_score INTEGER NOT NULL DEFAULT 0,
    interaction_count INTEGER NOT NULL DEFAULT 0,
    last_interaction_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (member_a < member_b),
    UNIQUE (member_a, member_b)
);

CREATE INDEX IF NOT EXISTS idx_edges_member_a ON relationship_edges(member_a, status);
CREATE INDEX IF NOT EXISTS idx_edges_member_b ON relationship_edges(member_b, status);

-- Interaction events: append-only engagement log per edge
CREATE TABLE IF NOT EXISTS interaction_events (
    id TEXT PRIMARY KEY,
    edge_id BIGINT NOT NULL REFERENCES relationship_edges(id),
    activity_type TEXT NOT NULL,
    payload JSONB,
    points INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_edge ON interaction_events(edge_id, created_at);

-- Event RSVPs: attendance responses used for the shared-events signal
CREATE TABLE IF NOT EXISTS event_rsvps (
    member_id BIGINT NOT NULL,
    event_id TEXT NOT NULL,
    status TEXT NOT NULL,
    PRIMARY KEY (member_id, event_id)
);

-- Recommendations: policy-gated content items
CREATE TABLE IF NOT EXISTS recommendations (
    id TEXT PRIMARY KEY,
    owner_id BIGINT NOT NULL,
    title TEXT NOT NULL,
    body TEXT,
    city TEXT,
    country TEXT,
    type TEXT,
    price_level INTEGER NOT NULL DEFAULT 0,
    rating REAL NOT NULL DEFAULT 0,
    tags JSONB,
    rule TEXT NOT NULL DEFAULT '',
    min_closeness INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recommendations_owner ON recommendations(owner_id);
CREATE INDEX IF NOT EXISTS idx_recommendations_city ON recommendations(city);

-- Bookable resources hosted by members
CREATE TABLE IF NOT EXISTS resources (
    id TEXT PRIMARY KEY,
    host_id BIGINT NOT NULL,
    title TEXT NOT NULL,
    city TEXT,
    country TEXT,
    rule TEXT NOT NULL DEFAULT '',
    min_closeness INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Bookings recorded against resources after the eligibility check
CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    resource_id TEXT NOT NULL REFERENCES resources(id),
    member_id BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    start_at TIMESTAMPTZ NOT NULL,
    end_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bookings_resource ON bookings(resource_id, created_at);
`
