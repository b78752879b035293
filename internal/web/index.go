package web

// indexHTML is a minimal browser shell over the /ws protocol. It mirrors
// the TUI: now playing, a clock, and transport buttons.
const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>quartz</title>
<style>
  body { font-family: monospace; background: #101014; color: #e4e4e7; max-width: 40rem; margin: 3rem auto; padding: 0 1rem; }
  h1 { font-size: 1rem; letter-spacing: .3em; color: #818cf8; }
  #title { font-size: 1.2rem; }
  #meta, #clock, #status { color: #a1a1aa; }
  button { font-family: inherit; background: #27272a; color: inherit; border: 1px solid #3f3f46; padding: .4rem .9rem; margin-right: .4rem; cursor: pointer; }
  button:hover { background: #3f3f46; }
  ol { padding-left: 1.5rem; }
  li.playing { color: #818cf8; }
  li.unplayable { color: #52525b; text-decoration: line-through; }
</style>
</head>
<body>
<h1>QUARTZ</h1>
<p id="title">&mdash;</p>
<p id="meta"></p>
<p><span id="status">stopped</span> &middot; <span id="clock">0:00 / 0:00</span></p>
<p>
  <button data-cmd="previous">&#9198;</button>
  <button data-cmd="jump_backward">-10s</button>
  <button data-cmd="play_pause">&#9199;</button>
  <button data-cmd="jump_forward">+10s</button>
  <button data-cmd="next">&#9197;</button>
</p>
<ol id="queue"></ol>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
const fmt = (ms) => {
  const s = Math.floor(ms / 1000);
  return Math.floor(s / 60) + ":" + String(s % 60).padStart(2, "0");
};
let duration = 0;
ws.onmessage = (raw) => {
  const ev = JSON.parse(raw.data);
  switch (ev.type) {
  case "current_track":
    document.getElementById("title").textContent = ev.track.title;
    document.getElementById("meta").textContent = ev.track.artist + " — " + ev.track.album;
    break;
  case "status":
    document.getElementById("status").textContent = ev.status;
    break;
  case "duration":
    duration = ev.clock_ms;
    break;
  case "position":
    document.getElementById("clock").textContent = fmt(ev.clock_ms) + " / " + fmt(duration);
    break;
  case "current_track_list": {
    const list = document.getElementById("queue");
    list.replaceChildren(...ev.tracks.map((t) => {
      const li = document.createElement("li");
      li.textContent = t.title + " — " + t.artist;
      li.className = t.status;
      return li;
    }));
    break;
  }
  }
};
document.querySelectorAll("button").forEach((b) => {
  b.onclick = () => ws.send(JSON.stringify({ type: b.dataset.cmd }));
});
</script>
</body>
</html>
`
