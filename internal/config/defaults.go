package config

// DefaultConfigYAML is a commented starting point for .jurado.yaml.
const DefaultConfigYAML = `# Jurado IA configuration
# Every key can also be set through JURADO_<SECTION>_<KEY>, e.g. JURADO_SERVER_PORT.

log:
  level: info          # debug, info, warn, error
  format: auto         # auto, text, json

server:
  host: 0.0.0.0
  port: 8000
  allowed_origins:
    - http://localhost:3000
    - http://localhost:5173

gemini:
  # api_key is usually taken from GOOGLE_API_KEY or GEMINI_API_KEY
  model: gemini-2.5-flash
  temperature: 0.7
  synthesis_temperature: 0.3
  timeout: 2m
  max_retries: 2
  rate_limit_rpm: 60

media:
  key_frames: 3
  transcript_language: pt

analysis:
  item_timeout: 5m
  max_concurrency: 0   # 0 analyzes every item at once
  max_upload_mb: 50

history:
  enabled: false
  path: .jurado/history.db
`
