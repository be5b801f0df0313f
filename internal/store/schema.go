package store

const schema = `
-- Single-row counter shared by both event tables.
CREATE TABLE IF NOT EXISTS global_sequence (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    next_val INTEGER NOT NULL DEFAULT 1
);
INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1);

-- Every LLM API call, for cost tracking and debugging.
CREATE TABLE IF NOT EXISTS llm_request_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sequence INTEGER NOT NULL UNIQUE,
    timestamp_ms INTEGER NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    purpose TEXT NOT NULL,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    success INTEGER NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    request_body TEXT NOT NULL DEFAULT '',
    response_body TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events(purpose);
CREATE INDEX IF NOT EXISTS idx_llm_events_model ON llm_request_events(model);

-- One row per scheduled tick: what was generated and whether it was posted.
CREATE TABLE IF NOT EXISTS quiz_posts (
    id TEXT PRIMARY KEY,
    sequence INTEGER NOT NULL UNIQUE,
    timestamp_ms INTEGER NOT NULL,
    question TEXT NOT NULL,
    options TEXT NOT NULL, -- JSON array of 4 strings
    correct_option_id INTEGER NOT NULL,
    explanation TEXT NOT NULL,
    source TEXT NOT NULL, -- generated | fallback
    attempts INTEGER NOT NULL,
    published INTEGER NOT NULL,
    publish_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_quiz_posts_timestamp ON quiz_posts(timestamp_ms);
`
